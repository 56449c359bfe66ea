package main

type config struct {
	BaseURL   string `mapstructure:"base_url"`
	Secret    string `mapstructure:"secret"`
	PaymentID string `mapstructure:"payment_id"`
	EventType string `mapstructure:"event_type"`
	Interval  string `mapstructure:"interval"`
	Count     int    `mapstructure:"count"`
}
