package domain

import "errors"

// Domain errors represent provisioning failures that callers inspect with errors.Is.
var (
	// Container errors
	ErrContainerNotFound = errors.New("container not found")
	ErrContainerNotReady = errors.New("container did not become ready within deadline")

	// Template errors
	ErrTemplateNotFound = errors.New("template not found")

	// Tunnel errors
	ErrNoTunnelConfigs = errors.New("no tunnel configuration files available")
	ErrProfileNotFound = errors.New("tunnel profile not found")

	// Input errors
	ErrInputRequired      = errors.New("required input left empty")
	ErrOperationCancelled = errors.New("operation cancelled by user")

	// Config errors
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)
