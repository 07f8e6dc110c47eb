package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/catalogdesk/internal/app"
	_ "github.com/odyssey-erp/catalogdesk/internal/testing/guard"
)

func TestMainReturnsInTestMode(t *testing.T) {
	require.True(t, app.InTestMode())
	require.NotPanics(t, main)
}
