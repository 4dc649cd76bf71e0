package errors

import "errors"

// Result is the shape every presentation-facing operation returns.
// On failure Messages is never empty; on success either Message or ID is set.
type Result struct {
	Success  bool        `json:"success"`
	Code     string      `json:"code,omitempty"`
	Messages []string    `json:"messages,omitempty"`
	Message  string      `json:"message,omitempty"`
	ID       uint        `json:"id,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// OK builds a success result with a confirmation message and optional payload.
func OK(message string, data interface{}) Result {
	return Result{Success: true, Message: message, Data: data}
}

// Created builds a success result carrying the id of the created or updated resource.
func Created(id uint, message string) Result {
	return Result{Success: true, ID: id, Message: message}
}

// FromError converts any error into a failure result without leaking storage internals.
func FromError(err error) Result {
	if err == nil {
		return Result{Success: true}
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Classify(err, "")
	}

	messages := appErr.Messages
	if len(messages) == 0 {
		messages = []string{appErr.Error()}
	}
	if appErr.Code == InternalDatabase {
		messages = []string{storageMessage}
	}

	return Result{
		Success:  false,
		Code:     appErr.Code,
		Messages: messages,
		Data:     shortagesOrNil(appErr),
	}
}

func shortagesOrNil(e *Error) interface{} {
	if len(e.Shortages) == 0 {
		return nil
	}
	return e.Shortages
}
