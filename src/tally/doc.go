// Package tally assembles a complete tally node from a config.Config.
//
//	conf := config.NewDefaultConfig()
//	conf.Store = true
//	engine := tally.NewTally(conf)
//	if err := engine.Init(); err != nil {
//		return err
//	}
//	engine.Run()
//
// Init opens the store, loads or creates the validator key, resumes the
// application from the last stored block, and wires the in-memory proxy, the
// node and the HTTP service.
package tally
