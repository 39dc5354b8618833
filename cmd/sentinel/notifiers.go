package main

// Notifier blank imports — each import activates a self-registering
// channel adapter. Add new channels here as they are implemented.

import (
	_ "github.com/osgard/sentinel/internal/adapter/discord"
	_ "github.com/osgard/sentinel/internal/adapter/email"
	_ "github.com/osgard/sentinel/internal/adapter/slack"
)
