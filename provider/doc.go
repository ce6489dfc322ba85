// Package provider defines the minimal contract shared by swappable backends
// and a generic registry holding them by name.
//
//	reg := provider.NewRegistry[transcription.Provider]()
//	reg.RegisterFactory("deepgram", factory)
//	p, err := reg.Create("deepgram", nil)
//	next, _ := reg.Next("assemblyai")
package provider
