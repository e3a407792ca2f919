package backend

import "github.com/zamdevio/droply/pkg/plugin"

// NoneLevels is the level range advertised for the identity codec.
var NoneLevels = plugin.LevelRange{Min: 0, Max: 0, Default: 0}

// None is the identity codec: bytes pass through unchanged. Registering it
// lets callers resolve "none" through the same loader path as any other
// algorithm.
type None struct{}

func (None) Compress(data []byte, _ int) ([]byte, error) { return data, nil }
func (None) Decompress(data []byte) ([]byte, error)      { return data, nil }
