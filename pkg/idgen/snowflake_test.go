package idgen_test

import (
	"testing"

	"github.com/jhoicas/inventario-ledger/pkg/idgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_Creciente(t *testing.T) {
	g, err := idgen.New(3)
	require.NoError(t, err)
	prev := g.Next()
	for i := 0; i < 1000; i++ {
		n := g.Next()
		assert.Greater(t, n, prev)
		prev = n
	}
}

func TestNew_NodoFueraDeRango(t *testing.T) {
	_, err := idgen.New(2048)
	assert.Error(t, err)
}
