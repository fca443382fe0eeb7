package sessionstate

import (
	"io/fs"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// dirSize sums the sizes of regular files under root
func dirSize(root string) (int64, error) {
	var total atomic.Int64
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total.Add(info.Size())
			}
		}
		return nil
	})
	return total.Load(), err
}
