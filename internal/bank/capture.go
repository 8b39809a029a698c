package bank

import (
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/fontsound-core/internal/fontsound"
)

// Capture records every live fontsound of dev, links included.
func Capture(dev *fontsound.Device, name string) (*Bank, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Bank{
		Version: FormatVersion,
		ID:      NewID(),
		Name:    strings.TrimSpace(name),
		Device:  dev.Name(),
		// Second precision survives both the database and the file format.
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Sounds:    dev.Snapshots(),
	}, nil
}

// Restore recreates the sounds of b on dev and returns the mapping from
// the bank's handles to the new ones.
//
// Attributes go through the device's validating setters. Links are formed
// last, targets before their sources, since a linked fontsound can no
// longer be written. On any failure everything created by the call is
// deleted again and the error is returned.
func Restore(dev *fontsound.Device, b *Bank) (map[uint32]uint32, error) {
	if err := Validate(b); err != nil {
		return nil, err
	}
	order, _ := linkOrder(b.Sounds) //nolint:errcheck // checked by Validate

	ids, err := dev.Gen(len(b.Sounds))
	if err != nil {
		return nil, fmt.Errorf("creating fontsounds: %w", err)
	}
	mapping := make(map[uint32]uint32, len(ids))
	for i, s := range b.Sounds {
		mapping[s.ID] = ids[i]
	}

	for i, s := range b.Sounds {
		for _, p := range fontsound.AllParams() {
			if p == fontsound.ParamLink {
				continue
			}
			if err := dev.SetIntv(ids[i], p, s.Values(p)); err != nil {
				undo(dev, ids, nil)
				return nil, fmt.Errorf("restoring sound %d %s: %w", s.ID, p, err)
			}
		}
	}

	linked := make([]uint32, 0, len(order))
	for _, i := range order {
		src, target := ids[i], mapping[b.Sounds[i].LinkID]
		if err := dev.SetInt(src, fontsound.ParamLink, int32(target)); err != nil { //nolint:gosec // handle
			undo(dev, ids, linked)
			return nil, fmt.Errorf("linking sound %d: %w", b.Sounds[i].ID, err)
		}
		linked = append(linked, src)
	}
	return mapping, nil
}

// undo clears the given links newest first, then deletes ids. A sound
// that stays referenced (a self link) is left for device teardown.
func undo(dev *fontsound.Device, ids, linked []uint32) {
	for i := len(linked) - 1; i >= 0; i-- {
		_ = dev.SetInt(linked[i], fontsound.ParamLink, 0) //nolint:errcheck // best effort
	}
	if err := dev.Delete(ids); err == nil {
		return
	}
	for _, id := range ids {
		_ = dev.Delete([]uint32{id}) //nolint:errcheck // best effort
	}
}

// linkOrder returns the indices of linked sounds so that each source is
// linked before anything links to it. Self links are allowed; longer
// cycles cannot be rebuilt and fail with ErrInvalidBank.
func linkOrder(sounds []fontsound.Snapshot) ([]int, error) {
	index := make(map[uint32]int, len(sounds))
	for i, s := range sounds {
		index[s.ID] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(sounds))
	order := make([]int, 0, len(sounds))

	var visit func(i int) error
	visit = func(i int) error {
		state[i] = visiting
		if link := sounds[i].LinkID; link != 0 {
			if t, ok := index[link]; ok && t != i {
				switch state[t] {
				case visiting:
					return fmt.Errorf("%w: link cycle through sound %d", ErrInvalidBank, sounds[i].ID)
				case unvisited:
					if err := visit(t); err != nil {
						return err
					}
				}
			}
			order = append(order, i)
		}
		state[i] = done
		return nil
	}

	for i := range sounds {
		if state[i] == unvisited {
			if err := visit(i); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}
