package config

import (
	"fmt"

	supa "github.com/supabase-community/supabase-go"
)

var SupabaseClient *supa.Client

// InitSupabase creates the shared Supabase client with the service key.
func InitSupabase(cfg SupabaseConfig) (*supa.Client, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}
	client, err := supa.NewClient(cfg.URL, cfg.ServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("error initializing Supabase client: %w", err)
	}
	SupabaseClient = client
	return client, nil
}
