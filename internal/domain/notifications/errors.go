package notifications

import "errors"

var (
	ErrValidation            = errors.New("invalid activity")
	ErrPersistence           = errors.New("notification create failed")
	ErrDelivery              = errors.New("notification email failed")
	ErrNotFound              = errors.New("notification not found")
	ErrDuplicateNotification = errors.New("notification already exists")
	ErrNoEmailAddress        = errors.New("recipient has no email address")
)
