// Package loader provides the feature loading system of the HTTP API.
//
// Each feature implements the Feature interface: a name, an enabled switch
// and a Load hook that registers its routes. The Manager loads every enabled
// feature in registration order.
//
//	mgr := loader.NewManager()
//	mgr.Register(pairsync.NewFeature(ctx, svc))
//	if err := mgr.LoadAll(app); err != nil {
//	    logg.Fatal("Failed to load features", zap.Error(err))
//	}
package loader
