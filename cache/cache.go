// Package cache keeps predictions across runs so unchanged sequences are not
// folded twice by the same model.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math"

	"github.com/VictoriaMetrics/fastcache"

	"github.com/neurlang/dnnfold/structure"
)

// fastcache stores larger entries through SetBig only
const maxSmall = 64*1024 - 64

var errCorrupt = errors.New("corrupt cache entry")

// Cache maps a model fingerprint and a sequence to the predicted structure.
type Cache struct {
	c    *fastcache.Cache
	path string
}

// Open loads the cache saved at path, or starts an empty one when there is
// none. An empty path keeps the cache in memory only.
func Open(path string, maxBytes int) *Cache {
	if path == "" {
		return &Cache{c: fastcache.New(maxBytes)}
	}
	return &Cache{c: fastcache.LoadFromFileOrNew(path, maxBytes), path: path}
}

func key(fp [32]byte, seq string) []byte {
	h := sha256.Sum256([]byte(seq))
	return append(fp[:], h[:]...)
}

// Get returns the stored prediction of seq.
func (c *Cache) Get(fp [32]byte, seq string) (float64, structure.Pairs, bool) {
	k := key(fp, seq)
	v := c.c.GetBig(nil, k)
	if len(v) == 0 {
		var ok bool
		if v, ok = c.c.HasGet(nil, k); !ok {
			return 0, nil, false
		}
	}
	score, pairs, err := decode(v, len(seq))
	if err != nil {
		return 0, nil, false
	}
	return score, pairs, true
}

// Put stores a prediction of seq.
func (c *Cache) Put(fp [32]byte, seq string, score float64, pairs structure.Pairs) {
	k := key(fp, seq)
	v := encode(score, pairs)
	if len(k)+len(v) > maxSmall {
		c.c.SetBig(k, v)
		return
	}
	c.c.Set(k, v)
}

// Save writes the cache back to the path it was opened from.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}
	return c.c.SaveToFile(c.path)
}

// Len returns the number of stored entries.
func (c *Cache) Len() uint64 {
	var s fastcache.Stats
	c.c.UpdateStats(&s)
	return s.EntriesCount
}

// encode writes the score followed by the uvarint partner of every base.
func encode(score float64, pairs structure.Pairs) []byte {
	b := make([]byte, 8, 8+pairs.Len()*2)
	binary.LittleEndian.PutUint64(b, math.Float64bits(score))
	for i := 1; i <= pairs.Len(); i++ {
		b = binary.AppendUvarint(b, uint64(pairs[i]))
	}
	return b
}

func decode(b []byte, L int) (float64, structure.Pairs, error) {
	if len(b) < 8 {
		return 0, nil, errCorrupt
	}
	score := math.Float64frombits(binary.LittleEndian.Uint64(b))
	b = b[8:]
	pairs := structure.New(L)
	for i := 1; i <= L; i++ {
		v, n := binary.Uvarint(b)
		if n <= 0 || v > uint64(L) {
			return 0, nil, errCorrupt
		}
		pairs[i] = int(v)
		b = b[n:]
	}
	if len(b) != 0 {
		return 0, nil, errCorrupt
	}
	return score, pairs, nil
}
