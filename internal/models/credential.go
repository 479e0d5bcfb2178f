package models

import "time"

// Credential is a stored, encrypted provider API key.
type Credential struct {
	ID           int64     `db:"id"`
	Provider     string    `db:"provider"`
	EncryptedKey string    `db:"encrypted_key"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ProviderKeyStatus reports whether a key is stored for a provider.
// It never carries the key itself.
type ProviderKeyStatus struct {
	Provider    string     `json:"provider"`
	HasKey      bool       `json:"hasKey"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// ProviderInfo describes a configured LLM vendor.
type ProviderInfo struct {
	Name    string `json:"name"`
	Model   string `json:"model"`
	Default bool   `json:"default"`
}
