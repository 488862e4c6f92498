// Package logging provides the leveled logging used across the thumbnailer.
//
// The level is read once from the environment: DEBUG=1 (or true/yes/on)
// forces debug logging, otherwise LOG_LEVEL selects one of debug, info,
// warn or error. The default is info.
package logging
