package entity

import "errors"

var (
	ErrLeadNotFound         = errors.New("lead not found")
	ErrLeadAlreadyExists    = errors.New("lead already exists")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyAlreadyExists = errors.New("company already exists")
	ErrCompanyHasNoDomain   = errors.New("company domain is required")
)
