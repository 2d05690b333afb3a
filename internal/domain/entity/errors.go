package entity

import "errors"

var (
	ErrMissingUUID        = errors.New("missing required field: uuid")
	ErrMissingUserSig     = errors.New("missing required field: user_sig")
	ErrMissingUserAddress = errors.New("missing required field: user_address")
	ErrMissingProjectID   = errors.New("missing required field: project_id")
	ErrMissingDigest      = errors.New("missing required field: digest")
	ErrMissingIntent      = errors.New("missing required field: intent")

	ErrMethodNotAllowed = errors.New("intent method not allowed")
	ErrEmptyFrom        = errors.New("intent from list is empty")
	ErrInvalidFromType  = errors.New("intent from entry is not an asset type")

	ErrAssetNotFound       = errors.New("asset not found in session")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUUIDAlreadyBound    = errors.New("uuid already bound to another session")
	ErrUUIDNotFound        = errors.New("uuid mapping not found")

	ErrInvalidDigest       = errors.New("invalid digest")
	ErrSignatureGeneration = errors.New("failed to generate validator signature")
)
