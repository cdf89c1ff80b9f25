// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package repos

import (
	"gorm.io/gorm"
)

// Repos bundles every table's repository.
type Repos struct {
	Users      *UserStore
	Elections  *ElectionStore
	Candidates *CandidateStore
	Ballots    *BallotStore
	Snapshots  *SnapshotStore
}

func New(db *gorm.DB) *Repos {
	return &Repos{
		Users:      NewUserStore(db),
		Elections:  NewElectionStore(db),
		Candidates: NewCandidateStore(db),
		Ballots:    NewBallotStore(db),
		Snapshots:  NewSnapshotStore(db),
	}
}

// conn returns tx when the caller is inside a transaction, db otherwise.
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// affected turns a zero-row write into gorm.ErrRecordNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
