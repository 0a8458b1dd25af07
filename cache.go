package huffpack

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/seiflotfy/huffpack/coding"
)

type cachedModel struct {
	table [256]uint64
	model *Model
}

// modelCache remembers trained models keyed by a hash of their frequency
// table. Entries carry the full table so a hash collision is a miss.
type modelCache struct {
	entries *lru.Cache[uint64, cachedModel]
}

func newModelCache(size int) *modelCache {
	entries, err := lru.New[uint64, cachedModel](size)
	if err != nil {
		// only returned for size <= 0
		panic(err)
	}
	return &modelCache{entries: entries}
}

func fingerprint(table *[256]uint64) uint64 {
	var buf [256 * 8]byte
	for i, c := range table {
		binary.LittleEndian.PutUint64(buf[i*8:], c)
	}
	return xxhash.Sum64(buf[:])
}

func (c *modelCache) get(freq coding.FrequencyMap) (*Model, bool) {
	table := freq.Table()
	e, ok := c.entries.Get(fingerprint(&table))
	if !ok || e.table != table {
		return nil, false
	}
	return e.model, true
}

func (c *modelCache) add(freq coding.FrequencyMap, m *Model) {
	table := freq.Table()
	c.entries.Add(fingerprint(&table), cachedModel{table: table, model: m})
}

func (c *modelCache) len() int {
	return c.entries.Len()
}
