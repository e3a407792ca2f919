package main

import (
	"errors"
	"io/fs"

	"github.com/zamdevio/droply"
	"github.com/zamdevio/droply/pkg/ext"
	"github.com/zamdevio/droply/pkg/loader"
	"github.com/zamdevio/droply/pkg/meta"
	"github.com/zamdevio/droply/pkg/registry"
)

// usageError marks user-input problems so the process exits with code 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// exitCode maps the error taxonomy onto process exit codes:
// 0 success, 1 general, 2 invalid arguments, 3 not found, 4 permission
// denied, 5 unsupported format.
func exitCode(err error) int {
	var usage *usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage), errors.Is(err, meta.ErrSpoofingDetected):
		return 2
	case errors.Is(err, fs.ErrNotExist):
		return 3
	case errors.Is(err, fs.ErrPermission):
		return 4
	case errors.Is(err, droply.ErrUnsupportedFormat),
		errors.Is(err, droply.ErrNotAnArchive),
		errors.Is(err, ext.ErrUnsupportedPairing),
		errors.Is(err, registry.ErrUnsupportedAlgorithm),
		errors.Is(err, registry.ErrUnsupportedArchive),
		errors.Is(err, loader.ErrPluginNotFound):
		return 5
	default:
		return 1
	}
}
