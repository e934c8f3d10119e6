package httputil

import (
	"errors"

	dErrors "childminder/pkg/domain-errors"
)

func asDomain(err error, target **dErrors.Error) bool {
	return errors.As(err, target)
}
