// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import "os"

const DefaultServerURL = "http://localhost:3318"

// ClientConfig holds the CLI's connection settings.
type ClientConfig struct {
	ServerURL  string
	VoterToken string
	VoterID    string
	ElectionID string

	// Pushgateway receives the CLI's ballot metrics when set.
	Pushgateway string
}

// ClientFromEnv reads BONK_SERVER_URL, BONK_VOTER_TOKEN, BONK_VOTER_ID,
// BONK_ELECTION_ID and BONK_PUSHGATEWAY_URL, after loading envFile if it
// exists. The values serve as flag defaults, so every one of them may be
// empty except the server URL.
func ClientFromEnv(envFile string) (ClientConfig, error) {
	if err := loadEnvFile(envFile); err != nil {
		return ClientConfig{}, err
	}

	cfg := ClientConfig{
		ServerURL:  os.Getenv("BONK_SERVER_URL"),
		VoterToken: os.Getenv("BONK_VOTER_TOKEN"),
		VoterID:    os.Getenv("BONK_VOTER_ID"),
		ElectionID: os.Getenv("BONK_ELECTION_ID"),

		Pushgateway: os.Getenv("BONK_PUSHGATEWAY_URL"),
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	return cfg, nil
}
