package sync

import (
	"encoding/binary"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over stripe indexes
type ring struct {
	hashRing *treemap.Map

	// minStripe caches the stripe of the min entry in hashRing, since
	// treemap.Map.Min() is O(log n).
	minStripe int
}

// newRing returns a consistent hash ring over [0, stripes), with each stripe
// having replicationFactor points on the ring.
func newRing(stripes, replicationFactor uint) *ring {
	hashRing := treemap.NewWith(utils.Int64Comparator)
	for stripe := 0; stripe < int(stripes); stripe++ {
		nameHash, _ := murmur3.Sum128([]byte(fmt.Sprintf("entry%d", stripe)))
		nameHashBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(nameHashBytes, nameHash)

		for i := 0; i < int(replicationFactor); i++ {
			hasher := murmur3.New128()
			hasher.Write(nameHashBytes)
			indexBytes := make([]byte, 4)
			binary.LittleEndian.PutUint32(indexBytes, uint32(i))
			hasher.Write(indexBytes)
			point, _ := hasher.Sum128()
			hashRing.Put(int64(point), stripe)
		}
	}

	var minStripe int
	if _, v := hashRing.Min(); v != nil {
		minStripe = v.(int)
	}

	return &ring{
		hashRing:  hashRing,
		minStripe: minStripe,
	}
}

// stripe consistently hashes the key onto a stripe index
func (r *ring) stripe(key []byte) int {
	hasher := murmur3.New128()
	hasher.Write(key)
	raw, _ := hasher.Sum128()

	_, stripe := r.hashRing.Ceiling(int64(raw))
	if stripe != nil {
		return stripe.(int)
	}
	return r.minStripe
}
