// Package service defines the interface commands and extensions use to reach
// an open exam bank. Depending on this interface rather than the concrete
// implementation in internal/bank lets tests substitute their own.
package service

import (
	"github.com/jpl-au/exambank/internal/store"
)

// Service is an open exam bank.
//
// Obtain one with bank.New and always defer Close:
//
//	svc, err := bank.New("", "")
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//	qs, err := svc.Questions(ctx, &store.QuestionFilter{Tags: []string{"algebra"}})
type Service interface {
	// Every entity, tag and maintenance operation comes from the store.
	// Close additionally checkpoints the WAL before releasing the database.
	store.Store

	// DBPath returns the path of the open database file.
	DBPath() string

	// Dir returns the .exambank directory holding the database.
	Dir() string

	// ReloadConfig re-reads configuration and reapplies the size limits.
	// Call after changing limits.* so later writes see the new values.
	ReloadConfig() error
}
