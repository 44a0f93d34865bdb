package database

import coreconfig "premiumbot/core/config"

// Config holds database connection settings for the purchase journal.
// The journal is optional: an empty host disables it entirely.
//
// The struct is declared in core/config (as DatabaseConfig) so that the
// config package does not need to import this one; the alias keeps
// database.Config as the canonical name for database consumers.
type Config = coreconfig.DatabaseConfig
