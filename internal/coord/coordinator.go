// Package coord bridges aggregator state into the Bubble Tea program.
package coord

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/booklegend/internal/aggregator"
	"github.com/abelbrown/booklegend/internal/logging"
	"github.com/abelbrown/booklegend/internal/observe"
	"github.com/abelbrown/booklegend/internal/ui"
)

// sender is the part of *tea.Program the coordinator uses (testing).
type sender interface {
	Send(msg tea.Msg)
}

// Coordinator forwards every published screen state to the program and
// runs the favorites pipeline.
// Uses context cancellation as the ONLY stop mechanism.
type Coordinator struct {
	agg *aggregator.Aggregator
	wg  sync.WaitGroup
}

// NewCoordinator creates a Coordinator for agg.
func NewCoordinator(agg *aggregator.Aggregator) *Coordinator {
	return &Coordinator{agg: agg}
}

// Start begins forwarding. Call with a cancellable context.
func (c *Coordinator) Start(ctx context.Context, program *tea.Program) {
	if program == nil {
		c.start(ctx, nil)
		return
	}
	c.start(ctx, program)
}

func (c *Coordinator) start(ctx context.Context, s sender) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.agg.Run(ctx)
	}()

	forward(ctx, &c.wg, s, c.agg.List(), func(v aggregator.ListView) tea.Msg {
		return ui.ListUpdated{View: v}
	})
	forward(ctx, &c.wg, s, c.agg.Detail(), func(v aggregator.DetailView) tea.Msg {
		return ui.DetailUpdated{View: v}
	})
	forward(ctx, &c.wg, s, c.agg.Favorites(), func(v aggregator.ListView) tea.Msg {
		return ui.FavoritesUpdated{View: v}
	})
	forward(ctx, &c.wg, s, c.agg.FavoriteIDs(), func(ids []string) tea.Msg {
		return ui.FavoriteIDsUpdated{IDs: ids}
	})
	forward(ctx, &c.wg, s, c.agg.DarkMode(), func(dark bool) tea.Msg {
		return ui.ThemeChanged{Dark: dark}
	})
}

// Wait blocks until the background goroutines exit.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// forward sends one message per value observed on v until ctx is done.
func forward[T any](ctx context.Context, wg *sync.WaitGroup, s sender, v *observe.Value[T], toMsg func(T) tea.Msg) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for val := range v.Subscribe(ctx) {
			// Handle nil program gracefully for testing
			if s == nil {
				continue
			}
			s.Send(toMsg(val))
		}
		logging.Debug("Coordinator stream closed")
	}()
}

// Commands returns the UI command set bound to the aggregator. Results reach
// the UI through the forwarding streams, so the commands themselves return
// nil or an ActionFailed.
func Commands(ctx context.Context, agg *aggregator.Aggregator) ui.AppConfig {
	return ui.AppConfig{
		LoadFirstPage: func(query string) tea.Cmd {
			return func() tea.Msg {
				agg.LoadFirstPage(ctx, query)
				return nil
			}
		},
		LoadNextPage: func() tea.Cmd {
			return func() tea.Msg {
				agg.LoadNextPage(ctx)
				return nil
			}
		},
		Refresh: func() tea.Cmd {
			return func() tea.Msg {
				agg.Refresh(ctx)
				return nil
			}
		},
		// SetQuery only arms a timer, so it runs inline to keep keystrokes
		// in order.
		SetQuery: func(text string) tea.Cmd {
			agg.SetQuery(ctx, text)
			return nil
		},
		LoadDetail: func(id string) tea.Cmd {
			return func() tea.Msg {
				agg.LoadDetail(ctx, id)
				return nil
			}
		},
		ToggleFavorite: func(id string) tea.Cmd {
			return func() tea.Msg {
				if err := agg.ToggleFavorite(ctx, id); err != nil {
					return ui.ActionFailed{Err: err}
				}
				return nil
			}
		},
		ToggleTheme: func() tea.Cmd {
			return func() tea.Msg {
				if err := agg.ToggleDarkMode(ctx); err != nil {
					return ui.ActionFailed{Err: err}
				}
				return nil
			}
		},
		DarkMode: agg.DarkMode().Get(),
	}
}
