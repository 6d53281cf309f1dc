package blockstore

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Layout returns the set of allocated block ids.
//
// The result is a copy: later changes to the device do not affect it. A
// closed device has an empty layout.
func (d *Device) Layout() *roaring.Bitmap {
	bm := roaring.New()
	if d.closed() {
		return bm
	}

	d.fbm.ForEachSet(func(i int) bool {
		bm.Add(uint32(i))
		return true
	})
	return bm
}

// Restore claims every id in layout as if by Request.
//
// It is all-or-nothing: when an id is out of range or already allocated,
// the ids claimed by this call are released again and the error names the
// failing id. Payload bytes are never touched.
func (d *Device) Restore(layout *roaring.Bitmap) error {
	if d.closed() {
		return ErrClosed
	}
	if layout == nil {
		return nil
	}

	claimed := make([]BlockID, 0, layout.GetCardinality())
	it := layout.Iterator()
	for it.HasNext() {
		id := BlockID(it.Next())
		if err := d.Request(id); err != nil {
			for _, c := range claimed {
				d.Release(c)
			}
			return fmt.Errorf("restore block %d: %w", id, err)
		}
		claimed = append(claimed, id)
	}
	return nil
}
