// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/osg-htc/institutions/internal/platform/apperr"
	"github.com/osg-htc/institutions/internal/platform/constants"
)

// publicIDAlphabet is the character set of public id suffixes.
const publicIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// rejectAbove is the largest multiple of len(publicIDAlphabet) that fits in a byte.
// Bytes at or above it are discarded so every character is equally likely.
const rejectAbove = 256 - 256%len(publicIDAlphabet)

// PublicIDGenerator draws collision-free public identifiers.
type PublicIDGenerator struct {
	length      int
	maxAttempts int
	random      io.Reader
}

// NewPublicIDGenerator creates a generator using crypto/rand.
// Lengths below [constants.MinPublicIDLength] are raised to it.
func NewPublicIDGenerator(length, maxAttempts int) *PublicIDGenerator {
	return NewPublicIDGeneratorWithSource(length, maxAttempts, rand.Reader)
}

// NewPublicIDGeneratorWithSource is [NewPublicIDGenerator] with an explicit entropy source.
func NewPublicIDGeneratorWithSource(length, maxAttempts int, random io.Reader) *PublicIDGenerator {
	if length < constants.MinPublicIDLength {
		length = constants.MinPublicIDLength
	}
	if maxAttempts < 1 {
		maxAttempts = constants.DefaultPublicIDMaxAttempts
	}
	return &PublicIDGenerator{length: length, maxAttempts: maxAttempts, random: random}
}

/*
Generate returns a namespace-prefixed id absent from existing.

Parameters:
  - existing: map[string]struct{} (Full public ids already assigned)

Returns:
  - string: The new public id
  - int: Number of candidates drawn
  - error: apperr.Exhausted once maxAttempts candidates all collided
*/
func (generator *PublicIDGenerator) Generate(existing map[string]struct{}) (string, int, error) {
	for attempt := 1; attempt <= generator.maxAttempts; attempt++ {
		suffix, err := generator.draw()
		if err != nil {
			return "", attempt, apperr.Internal(fmt.Errorf("draw public id: %w", err))
		}

		candidate := constants.PublicIDPrefix + suffix
		if _, taken := existing[candidate]; !taken {
			return candidate, attempt, nil
		}
	}

	return "", generator.maxAttempts, apperr.Exhausted(
		fmt.Sprintf("Unable to generate a unique institution id after %d attempts", generator.maxAttempts))
}

// draw reads one random suffix by rejection sampling.
func (generator *PublicIDGenerator) draw() (string, error) {
	suffix := make([]byte, 0, generator.length)
	buffer := make([]byte, generator.length*2)

	for len(suffix) < generator.length {
		if _, err := io.ReadFull(generator.random, buffer); err != nil {
			return "", err
		}
		for _, b := range buffer {
			if int(b) >= rejectAbove {
				continue
			}
			suffix = append(suffix, publicIDAlphabet[int(b)%len(publicIDAlphabet)])
			if len(suffix) == generator.length {
				break
			}
		}
	}
	return string(suffix), nil
}
