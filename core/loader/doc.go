// Package loader mounts application features onto the Fiber app.
//
// Each feature implements Feature (Name, IsEnabled, Load). A Manager collects features
// with Register and loads the enabled ones with LoadAll, in registration order.
//
// The matching wizard and the integrity checks are both features.
package loader
