package entity_test

import (
	"testing"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeUnitCode(t *testing.T) {
	cases := map[string]string{
		"ml":      "ml",
		" KG ":    "kg",
		"L":       "l",
		"ｍｌ":      "ml", // ancho completo
		"Docena":  "docena",
		"":        "",
		"\tunit\n": "unit",
	}
	for in, want := range cases {
		assert.Equal(t, want, entity.NormalizeUnitCode(in), "entrada %q", in)
	}
}

func TestMovementKind_ParseYSigno(t *testing.T) {
	k, err := entity.ParseMovementKind("transfer_out")
	if assert.NoError(t, err) {
		assert.Equal(t, entity.KindTransferOut, k)
		assert.Equal(t, "transfer_out", k.String())
	}
	_, err = entity.ParseMovementKind("robo")
	assert.Error(t, err)
}
