package audit

import "errors"

var ErrInvalidEntityType = errors.New("invalid audit entity type")
