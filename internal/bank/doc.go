// Package bank saves and restores whole sets of fontsounds.
//
// A Bank is captured from a live device, stored in SQLite through a
// Repository, exported as a deterministic CBOR file, and restored onto any
// device with fresh handles. Links between sounds inside a bank survive
// the round trip.
//
//	b, err := bank.Capture(dev, "grand piano")
//	if err != nil {
//	    return err
//	}
//	if err := repo.Create(ctx, b); err != nil {
//	    return err
//	}
//	mapping, err := bank.Restore(otherDev, b)
package bank
