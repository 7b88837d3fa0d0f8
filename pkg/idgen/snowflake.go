// Package idgen genera el orden monotónico de los movimientos del libro.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator secuencia snowflake por nodo; crece con el tiempo y es única entre nodos.
type Generator struct {
	node *snowflake.Node
}

// New crea el generador para el nodo (0-1023).
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("idgen: nodo %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// Next siguiente valor de la secuencia.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}
