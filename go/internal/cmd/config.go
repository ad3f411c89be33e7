package main

import (
	"github.com/mcdev12/turnclock/go/internal/clock"
	"github.com/mcdev12/turnclock/go/internal/clock/codec"
	"github.com/mcdev12/turnclock/go/internal/clock/events"
	"github.com/mcdev12/turnclock/go/internal/clock/gateway"
	"github.com/mcdev12/turnclock/go/internal/config"
)

// Translation from the loaded configuration to each component's own settings

func codecOptions(cfg *config.Config) codec.Options {
	return codec.Options{
		Kind:      codec.Kind(cfg.Codec.Kind),
		Alphabet:  cfg.Codec.Alphabet,
		MinLength: cfg.Codec.MinLength,
	}
}

func clockSettings(cfg *config.Config) clock.Settings {
	settings := clock.DefaultSettings()
	settings.DefaultPlayerCount = cfg.Clocks.DefaultPlayerCount
	settings.DefaultAllowedSeconds = cfg.Clocks.DefaultAllowedSeconds
	settings.MaxPlayers = cfg.Clocks.MaxPlayers
	settings.MaxAllowedSeconds = cfg.Clocks.MaxAllowedSeconds
	return settings
}

func connectionConfig(cfg *config.Config) gateway.ConnectionConfig {
	cc := gateway.DefaultConnectionConfig()
	cc.PushInterval = cfg.Stream.PushInterval
	cc.WriteTimeout = cfg.Stream.WriteTimeout
	cc.ReadTimeout = cfg.Stream.ReadTimeout
	cc.PingInterval = cfg.Stream.PingInterval
	return cc
}

func jetStreamConfig(cfg *config.Config) events.JetStreamConfig {
	jc := events.DefaultJetStreamConfig()
	jc.URL = cfg.NATS.URL
	jc.StreamName = cfg.NATS.Stream
	jc.SubjectPrefix = cfg.NATS.SubjectPrefix
	return jc
}
