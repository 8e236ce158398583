package main

import (
	"testing"

	"github.com/schollz/drumcore/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHostPortParsesValidAddress(t *testing.T) {
	host, port, err := splitHostPort("127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, 9000, port)
}

func TestSplitHostPortRejectsMissingPort(t *testing.T) {
	_, _, err := splitHostPort("127.0.0.1")
	assert.Error(t, err)
}

func TestSplitHostPortRejectsNonNumericPort(t *testing.T) {
	_, _, err := splitHostPort("127.0.0.1:abc")
	assert.Error(t, err)
}

func TestBuildEventsWithoutPublisherReturnsFeed(t *testing.T) {
	feed := monitor.NewFeed()
	got := buildEvents(feed, nil)
	assert.Same(t, feed, got)
}

func TestBuildSinkDefaultsToNullSink(t *testing.T) {
	sink, cleanup, err := buildSink("")
	require.NoError(t, err)
	defer cleanup()
	_, ok := sink.(nullSink)
	assert.True(t, ok)
}
