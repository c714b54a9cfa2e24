package repository

import "errors"

// ErrNotFound is returned instead of the driver's own not-found error so the
// service layer never has to import gorm.
var ErrNotFound = errors.New("record not found")
