package pairsync

import (
	"github.com/carboneio/sclone/core/reconcile"
	"github.com/carboneio/sclone/core/storage"
)

// Pair binds two storages and the rules reconciling them.
type Pair struct {
	Name   string
	Source storage.Adapter
	Target storage.Adapter
	Policy reconcile.Policy
}

func sourceKey(e *storage.FileEntry) string {
	if e.SourceKey != "" {
		return e.SourceKey
	}
	return e.Key
}

func targetKey(e *storage.FileEntry) string {
	if e.TargetKey != "" {
		return e.TargetKey
	}
	return e.Key
}
