// Package viterbi implements a generic two-state hidden Markov model
// decoder used to segment a fix stream into flying/standing and
// circling/straight runs.
package viterbi

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

// NumStates is the number of hidden states this decoder supports. The
// flying and circling segmentation problems are both two-state HMMs, and
// the decoder does not generalize beyond that (the corpus it is grounded
// on only ever instantiates it with two states).
const NumStates = 2

// Decoder is a two-state Viterbi decoder over an integer emission
// alphabet. The probability tables are stored as small dense matrices in
// the style of the teacher's fixed-size orbital transform matrices
// (orbit.go, rotation.go).
type Decoder struct {
	initProbs        []float64
	transitionProbs  *mat64.Dense // NumStates x NumStates
	emissionProbs    *mat64.Dense // NumStates x alphabet size
	logInit          []float64
	logTransition    *mat64.Dense
	logEmission      *mat64.Dense
	alphabetSize     int
}

// NewDecoder builds a Decoder from the supplied probability tables.
// initProbs must have NumStates entries; transitionProbs must be
// NumStates x NumStates with rows summing to 1; emissionProbs must be
// NumStates x (alphabet size) with rows summing to 1. NewDecoder panics
// on tables of the wrong shape (row sums are not checked) — these are
// contract violations, never expected
// from conforming callers (see spec §7, "Library-level programming
// errors").
func NewDecoder(initProbs []float64, transitionProbs, emissionProbs [][]float64) *Decoder {
	if len(initProbs) != NumStates {
		panic(fmt.Sprintf("viterbi: initProbs must have %d entries, got %d", NumStates, len(initProbs)))
	}
	if len(transitionProbs) != NumStates {
		panic(fmt.Sprintf("viterbi: transitionProbs must have %d rows, got %d", NumStates, len(transitionProbs)))
	}
	if len(emissionProbs) != NumStates {
		panic(fmt.Sprintf("viterbi: emissionProbs must have %d rows, got %d", NumStates, len(emissionProbs)))
	}
	alphabetSize := len(emissionProbs[0])

	transition := mat64.NewDense(NumStates, NumStates, nil)
	logTransition := mat64.NewDense(NumStates, NumStates, nil)
	for i, row := range transitionProbs {
		if len(row) != NumStates {
			panic("viterbi: transitionProbs row has wrong width")
		}
		for j, p := range row {
			transition.Set(i, j, p)
			logTransition.Set(i, j, math.Log(p))
		}
	}

	emission := mat64.NewDense(NumStates, alphabetSize, nil)
	logEmission := mat64.NewDense(NumStates, alphabetSize, nil)
	for i, row := range emissionProbs {
		if len(row) != alphabetSize {
			panic("viterbi: emissionProbs rows have inconsistent width")
		}
		for j, p := range row {
			emission.Set(i, j, p)
			logEmission.Set(i, j, math.Log(p))
		}
	}

	logInit := make([]float64, NumStates)
	for i, p := range initProbs {
		logInit[i] = math.Log(p)
	}

	return &Decoder{
		initProbs:       initProbs,
		transitionProbs: transition,
		emissionProbs:   emission,
		logInit:         logInit,
		logTransition:   logTransition,
		logEmission:     logEmission,
		alphabetSize:    alphabetSize,
	}
}

// Decode returns the most likely state path for the given observation
// sequence, computed in log-probability space to avoid underflow.
// Backtracking breaks ties toward the lower state index. An empty
// observation sequence decodes to an empty path. An observation outside
// the emission alphabet is a contract violation and panics.
func (d *Decoder) Decode(observations []int) []int {
	T := len(observations)
	if T == 0 {
		return []int{}
	}

	// logProb[t][s] = best log-probability of any path ending in state s
	// at step t. backptr[t][s] = the predecessor state achieving it.
	logProb := make([][NumStates]float64, T)
	backptr := make([][NumStates]int, T)

	for s := 0; s < NumStates; s++ {
		o := d.checkedObservation(observations[0])
		logProb[0][s] = d.logInit[s] + d.logEmission.At(s, o)
		backptr[0][s] = -1
	}

	for t := 1; t < T; t++ {
		o := d.checkedObservation(observations[t])
		for s := 0; s < NumStates; s++ {
			bestLog := math.Inf(-1)
			bestPrev := 0
			for prev := 0; prev < NumStates; prev++ {
				cand := logProb[t-1][prev] + d.logTransition.At(prev, s)
				if cand > bestLog {
					bestLog = cand
					bestPrev = prev
				}
				// Ties broken toward the lower state index: since prev
				// iterates in increasing order and we only replace on
				// strict improvement, the first (lowest) tied index wins.
			}
			logProb[t][s] = bestLog + d.logEmission.At(s, o)
			backptr[t][s] = bestPrev
		}
	}

	// Find the best terminal state, ties toward the lower index.
	bestFinal := 0
	bestFinalLog := logProb[T-1][0]
	for s := 1; s < NumStates; s++ {
		if logProb[T-1][s] > bestFinalLog {
			bestFinalLog = logProb[T-1][s]
			bestFinal = s
		}
	}

	path := make([]int, T)
	path[T-1] = bestFinal
	for t := T - 1; t > 0; t-- {
		path[t-1] = backptr[t][path[t]]
	}
	return path
}

func (d *Decoder) checkedObservation(o int) int {
	if o < 0 || o >= d.alphabetSize {
		panic(fmt.Sprintf("viterbi: observation %d outside emission alphabet of size %d", o, d.alphabetSize))
	}
	return o
}
