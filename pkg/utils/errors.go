package utils

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// CheckFatal logs a fatal error and exits if err is not nil
func CheckFatal(log logrus.FieldLogger, err error, context string) {
	if err != nil {
		log.WithError(err).Fatal(context)
	}
}

// CheckWarn logs a warning and returns true if err is not nil
func CheckWarn(log logrus.FieldLogger, err error, context string) bool {
	if err != nil {
		log.WithError(err).Warn(context)
		return true
	}
	return false
}

// WrapError wraps an error with additional context
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// WrapErrorf wraps an error with a formatted context
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
