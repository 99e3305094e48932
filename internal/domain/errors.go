package domain

import "errors"

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmptyMessage    = errors.New("message has no body and no attachment")
	ErrMessageTooLong  = errors.New("message too long")
	ErrNotSender       = errors.New("only the sender may modify the message")
	ErrNotEditable     = errors.New("only text messages can be edited")
)
