// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Server Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - AdminKeySalt: Secret for admin key HMAC (required)
  - TokenSalt: Secret for hashing stored voter tokens (required)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	--admin-salt  Admin key salt
	--token-salt  Voter token salt
	--env-file    Dotenv file (default .env)

# Environment Variables

Flags fall back to environment variables, which may come from the dotenv
file:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ADMIN_KEY_SALT → --admin-salt
	TOKEN_SALT     → --token-salt

CLI flags take precedence over environment variables, and variables already
set take precedence over the dotenv file.

# Client Configuration

ClientFromEnv reads the bonk CLI's defaults from BONK_SERVER_URL,
BONK_VOTER_TOKEN, BONK_VOTER_ID, BONK_ELECTION_ID and BONK_PUSHGATEWAY_URL.
*/
package cliparse
