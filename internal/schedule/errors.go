package schedule

import "errors"

var (
	ErrInvalidWindow     = errors.New("window start must be before window end")
	ErrIneligibleWindow  = errors.New("window is not eligible for booking")
	ErrViewNotActionable = errors.New("slots cannot be selected in month view")
	ErrHoldNotFound      = errors.New("hold not found")
	ErrNoPrompt          = errors.New("no prompt is staged")
)
