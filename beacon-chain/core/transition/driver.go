package transition

import (
	"context"
	"time"

	coreblocks "github.com/eth-clients/beaconstf/beacon-chain/core/blocks"
	"github.com/eth-clients/beaconstf/beacon-chain/state"
	rawblocks "github.com/eth-clients/beaconstf/consensus-types/blocks"
	"github.com/eth-clients/beaconstf/crypto/bls"
	"github.com/eth-clients/beaconstf/monitoring/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// Options carries the driver's optional collaborators and the three
// verification toggles the caller may disable (e.g. a slot-gap replay
// that already trusts its blocks). A nil *Options, or a nil field
// within one, falls back to its default — every verification flag
// defaults to true, so a nil Options behaves exactly like an Options
// with all three explicitly enabled.
type Options struct {
	// MetricsSink receives per-transition observations. Defaults to
	// metrics.NoopSink{}.
	MetricsSink metrics.Sink
	// ProcessedAt is a caller-supplied Unix timestamp. The driver does
	// not read it: it is neither passed to the metrics sink nor
	// compared against a wall clock.
	ProcessedAt uint64
	// VerifyProposer gates building and checking the block's proposer
	// signature set. Defaults to true.
	VerifyProposer *bool
	// VerifySignatures gates the batch pairing check over every
	// signature set collected from the block (proposer included, if
	// VerifyProposer also built one). Defaults to true.
	VerifySignatures *bool
	// VerifyStateRoot gates the post-state hash-tree-root check
	// against the block's claimed state root. Defaults to true.
	VerifyStateRoot *bool
}

func boolOption(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

// ExecuteStateTransition runs the full state transition for signed
// against pre: clone to transient, advance slots up to the block's
// slot (running epoch processing and fork upgrades along the way),
// process the block body, batch-verify every signature collected
// along the way (proposer, randao, and every operation's signature),
// then verify the block's claimed state root matches the one actually
// produced. pre is never mutated; the returned state is a fresh
// persistent-mode clone, or nil on any failure. genesisTime is
// accepted but not read; genesis-time/wall-clock validation is the
// caller's responsibility, not this function's.
func ExecuteStateTransition(ctx context.Context, pre *state.CachedBeaconState, signed *rawblocks.SignedBeaconBlock, genesisValidatorsRoot [32]byte, genesisTime uint64, opts *Options) (*state.CachedBeaconState, error) {
	ctx, span := trace.StartSpan(ctx, "transition.ExecuteStateTransition")
	defer span.End()

	sink := resolveSink(opts)
	start := time.Now()
	defer func() {
		safeObserve(func() { sink.ObserveStateTransition(time.Since(start), uint64(signed.Block.Slot)) })
	}()
	_ = genesisTime

	post := pre.Clone()
	post.SetCachesTransient()

	if err := ProcessSlots(ctx, post, signed.Block.Slot, sink); err != nil {
		return nil, errors.Wrap(err, "transition: failed to process slots")
	}

	sigs := bls.NewSet()
	if boolOption(opts.verifyProposer()) {
		proposerSet, err := coreblocks.ExtractProposerSignatureSet(post, signed, genesisValidatorsRoot)
		if err != nil {
			return nil, errors.Wrap(err, "transition: failed to build proposer signature set")
		}
		sigs.Join(proposerSet)
	}

	blockSigs, err := ProcessBlock(ctx, post, signed, genesisValidatorsRoot)
	if err != nil {
		return nil, errors.Wrap(err, "transition: failed to process block")
	}
	sigs.Join(blockSigs)

	if boolOption(opts.verifySignatures()) {
		ok, err := sigs.Verify()
		if err != nil {
			return nil, errors.Wrap(err, "transition: signature batch verification errored")
		}
		if !ok {
			safeObserve(sink.IncBlockSignatureFailures)
			_, label, verr := sigs.VerifyBisect()
			if verr != nil {
				return nil, errors.Wrap(verr, "transition: signature batch bisection errored")
			}
			return nil, &InvalidBlockSignatureError{Label: label}
		}
	}

	post.SetCachesPersistent()
	if boolOption(opts.verifyStateRoot()) {
		actualRoot, err := post.HashTreeRoot()
		if err != nil {
			return nil, errors.Wrap(err, "transition: failed to compute post-state root")
		}
		if actualRoot != signed.Block.StateRoot {
			return nil, &InvalidStateRootError{Expected: signed.Block.StateRoot, Actual: actualRoot}
		}
	}

	return post, nil
}

func resolveSink(opts *Options) metrics.Sink {
	if opts == nil || opts.MetricsSink == nil {
		return metrics.NoopSink{}
	}
	return opts.MetricsSink
}

func (opts *Options) verifyProposer() *bool {
	if opts == nil {
		return nil
	}
	return opts.VerifyProposer
}

func (opts *Options) verifySignatures() *bool {
	if opts == nil {
		return nil
	}
	return opts.VerifySignatures
}

func (opts *Options) verifyStateRoot() *bool {
	if opts == nil {
		return nil
	}
	return opts.VerifyStateRoot
}

// safeObserve recovers a panicking metrics sink so a misbehaving
// collaborator can never fail a state transition that otherwise
// succeeded.
func safeObserve(f func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Warn("metrics sink panicked, ignoring")
		}
	}()
	f()
}
