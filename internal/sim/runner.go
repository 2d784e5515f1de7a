package sim

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/Ritinpaul/symbios-core/internal/market"
	"github.com/Ritinpaul/symbios-core/internal/resource"
)

// Runner drives a park through a fixed number of market ticks on its own
// goroutine, streaming each TickResult to the caller. Lifecycle is managed
// by a tomb so a session can be stopped cleanly mid-run.
type Runner struct {
	park   *Park
	market *market.Market
	ticks  uint64

	t       tomb.Tomb
	results chan market.TickResult
}

func NewRunner(park *Park, mkt *market.Market, ticks uint64) *Runner {
	return &Runner{
		park:    park,
		market:  mkt,
		ticks:   ticks,
		results: make(chan market.TickResult, 1),
	}
}

// Start launches the session loop.
func (r *Runner) Start() {
	r.t.Go(r.run)
}

// Results streams one TickResult per completed tick. Closed when the
// session finishes or is stopped.
func (r *Runner) Results() <-chan market.TickResult {
	return r.results
}

// Stop aborts the session and waits for the loop to exit.
func (r *Runner) Stop() error {
	r.t.Kill(nil)
	return r.t.Wait()
}

// Wait blocks until the session completes.
func (r *Runner) Wait() error {
	return r.t.Wait()
}

func (r *Runner) run() error {
	defer close(r.results)

	// Agents price their intents against the previous tick's fair values;
	// the first tick quotes against base prices.
	var fairValues resource.Table[float64]
	for _, kind := range resource.Kinds() {
		fairValues.Set(kind, r.market.Pricing().BasePrice(kind))
	}

	for i := uint64(0); i < r.ticks; i++ {
		input := r.park.Step(fairValues)
		result := r.market.Tick(input)
		r.park.Apply(result)
		fairValues = result.Prices

		select {
		case r.results <- result:
		case <-r.t.Dying():
			log.Info().Uint64("tick", result.Tick).Msg("session stopped")
			return nil
		}
	}
	log.Info().Uint64("ticks", r.ticks).Msg("session complete")
	return nil
}
