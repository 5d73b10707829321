package configs

import "errors"

var (
	ErrValueNotFound = errors.New("value not found")
	ErrBadDeployment = errors.New("bad deployment")
	ErrNoConfigFile  = errors.New("no config file")
)
