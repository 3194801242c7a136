// Package fsrs implements the FSRS v6 memory model used to schedule reviews.
//
// The model is stateless: given the previous memory state of a card (or nil
// for a card that was never reviewed), a target retention and the number of
// whole days since the last review, NextStates returns the candidate memory
// state and interval for each of the four possible answers.
//
//	m, err := fsrs.New(fsrs.DefaultParameters)
//	if err != nil {
//	    return err
//	}
//	next, err := m.NextStates(nil, 0.9, 0)
//	good := next.Good
package fsrs
