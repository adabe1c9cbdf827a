package dashboard

import (
	"context"
	"encoding/json"
	"sync"

	"marathon-admin/internal/live"
	"marathon-admin/internal/mapview"
	"marathon-admin/internal/stream"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// API is the slice of the backend client the controller drives.
type API interface {
	ListRaces(ctx context.Context, f Filters) ([]live.RaceSnapshot, error)
	GetRace(ctx context.Context, id string) (live.RaceSnapshot, error)
	RoutePath(ctx context.Context, routeID string) ([]RoutePoint, error)
	DownloadCertificate(ctx context.Context, raceID, dir string) (string, error)
}

// PushSource is the push-transport surface the controller consumes.
type PushSource interface {
	Subscribe(channel string) error
	Unsubscribe(channel string) error
	Events() <-chan PushEvent
	Close() error
}

const (
	viewList   = "list"
	viewDetail = "detail"

	mapContainer = "race-map"
)

// Controller sequences the live race dashboard: list fetch on start and
// on filter change, detail fetch + focus on race selection, push-event
// reconciliation, and teardown. All state (registry, reconciler,
// renderer) is owned by one event-loop goroutine; push events and fetch
// completions are serialized through it, so the live state needs no
// locks. Overlapping fetches are resolved by monotonic request tokens:
// a completion that is no longer the latest issued for its target is
// discarded.
type Controller struct {
	api      API
	push     PushSource
	provider mapview.Provider
	notifier live.Notifier
	log      *zap.Logger

	downloadDir string

	registry   *live.Registry
	reconciler *live.Reconciler
	renderer   *mapview.Renderer

	filters     Filters
	view        string
	listToken   uint64
	detailToken uint64

	ctx       context.Context
	cancel    context.CancelFunc
	cmds      chan func()
	done      chan struct{}
	closeOnce sync.Once
}

func NewController(api API, push PushSource, provider mapview.Provider, notifier live.Notifier, log *zap.Logger, downloadDir string) *Controller {
	registry := live.NewRegistry()
	return &Controller{
		api:         api,
		push:        push,
		provider:    provider,
		notifier:    notifier,
		log:         log,
		downloadDir: downloadDir,
		registry:    registry,
		reconciler:  live.NewReconciler(registry, notifier),
		view:        viewList,
		cmds:        make(chan func(), 64),
		done:        make(chan struct{}),
	}
}

// Start subscribes to the push channels, launches the event loop and
// issues the initial list fetch.
func (c *Controller) Start(ctx context.Context) error {
	for _, ch := range []string{stream.ChannelRunnerLocation, stream.ChannelRaceCompleted, stream.ChannelAnnouncement} {
		if err := c.push.Subscribe(ch); err != nil {
			return err
		}
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	go c.run()
	c.enqueue(c.refreshList)
	return nil
}

func (c *Controller) run() {
	events := c.push.Events()
	for {
		select {
		case fn := <-c.cmds:
			fn()
		case ev, ok := <-events:
			if !ok {
				// keep serving commands so teardown can finish
				c.log.Warn("push transport closed")
				events = nil
				continue
			}
			c.handleEvent(ev)
		case <-c.done:
			return
		}
	}
}

func (c *Controller) enqueue(fn func()) {
	select {
	case c.cmds <- fn:
	case <-c.done:
	}
}

// Flush waits until every previously enqueued command has run.
func (c *Controller) Flush() {
	ran := make(chan struct{})
	c.enqueue(func() { close(ran) })
	select {
	case <-ran:
	case <-c.done:
	}
}

// Close unsubscribes, tears the renderer down and stops the loop.
// Cleanup failures are absorbed: leaving the view must always succeed.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.enqueue(func() {
			for _, ch := range []string{stream.ChannelRunnerLocation, stream.ChannelRaceCompleted, stream.ChannelAnnouncement} {
				if err := c.push.Unsubscribe(ch); err != nil {
					c.log.Warn("unsubscribe failed", zap.String("channel", ch), zap.Error(err))
				}
			}
			if c.renderer != nil {
				c.renderer.Close()
				c.renderer = nil
			}
			c.registry.Unfocus()
		})
		c.Flush()
		if c.cancel != nil {
			c.cancel()
		}
		close(c.done)
		if err := c.push.Close(); err != nil {
			c.log.Warn("push close failed", zap.Error(err))
		}
	})
}

// --- push events ---------------------------------------------------

func (c *Controller) handleEvent(ev PushEvent) {
	switch ev.Channel {
	case stream.ChannelRunnerLocation:
		var loc live.LocationEvent
		if err := json.Unmarshal(ev.Data, &loc); err != nil || loc.RaceID == "" {
			// not user-actionable, dropped without a notification
			c.log.Debug("malformed location event", zap.Error(err))
			return
		}
		c.reconciler.ApplyLocation(loc)
		if c.renderer != nil {
			c.renderer.Append(loc.RaceID, mapview.LatLng{Lat: loc.Location.Latitude, Lng: loc.Location.Longitude})
		}
	case stream.ChannelRaceCompleted:
		var done live.CompletedEvent
		if err := json.Unmarshal(ev.Data, &done); err != nil || done.RaceID == "" {
			c.log.Debug("malformed completion event", zap.Error(err))
			return
		}
		c.reconciler.ApplyCompleted(done)
	case stream.ChannelAnnouncement:
		var ann struct {
			Title   string `json:"title"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(ev.Data, &ann); err != nil || ann.Message == "" {
			return
		}
		c.notifier.Info(ann.Message)
	}
}

// --- list view -----------------------------------------------------

// SetFilters replaces the filter criteria and refetches the list.
func (c *Controller) SetFilters(f Filters) {
	c.enqueue(func() {
		c.filters = f
		c.refreshList()
	})
}

// Refresh refetches the race list with the current filters.
func (c *Controller) Refresh() {
	c.enqueue(c.refreshList)
}

func (c *Controller) refreshList() {
	c.listToken++
	token := c.listToken
	filters := c.filters

	go func() {
		races, err := c.api.ListRaces(c.ctx, filters)
		c.enqueue(func() {
			if token != c.listToken {
				return
			}
			if err != nil {
				c.log.Warn("race list fetch failed", zap.Error(err))
				c.notifier.Error("Unable to fetch races data. Please try again later.")
				c.registry.ReplaceAll(nil)
				return
			}
			c.registry.ReplaceAll(races)
		})
	}()
}

// --- detail view ---------------------------------------------------

// OpenRace transitions to the detail view and fetches the race's full
// detail plus, when the route declares a stored trace, its planned
// polyline. On fetch failure the view still opens on the held summary.
func (c *Controller) OpenRace(id string) {
	c.enqueue(func() {
		c.view = viewDetail
		c.fetchDetail(id, "")
	})
}

// RefreshRace refetches the focused race's detail in place.
func (c *Controller) RefreshRace(id string) {
	c.enqueue(func() {
		if c.view != viewDetail {
			return
		}
		c.fetchDetail(id, "Race data refreshed successfully.")
	})
}

func (c *Controller) fetchDetail(id, successMsg string) {
	c.detailToken++
	token := c.detailToken

	var summary *live.RaceSnapshot
	if held, ok := c.registry.Get(id); ok {
		copied := held.Clone()
		summary = &copied
	}

	go func() {
		var (
			detail live.RaceSnapshot
			route  []RoutePoint
		)
		g, ctx := errgroup.WithContext(c.ctx)
		g.Go(func() error {
			d, err := c.api.GetRace(ctx, id)
			detail = d
			return err
		})
		if summary != nil && summary.Route.HasTrace && summary.Route.ID != "" {
			routeID := summary.Route.ID
			g.Go(func() error {
				points, err := c.api.RoutePath(ctx, routeID)
				if err != nil {
					// planned route is decoration, not a blocker
					c.log.Warn("route path fetch failed", zap.Error(err))
					return nil
				}
				route = points
				return nil
			})
		}
		err := g.Wait()

		c.enqueue(func() {
			if token != c.detailToken || c.view != viewDetail {
				return
			}
			if err != nil {
				c.log.Warn("race detail fetch failed", zap.String("race", id), zap.Error(err))
				c.notifier.Error("Failed to load race details. Please try again.")
				if summary == nil {
					return
				}
				c.showDetail(*summary, nil)
				return
			}
			c.registry.Install(detail)
			c.showDetail(detail, route)
			if successMsg != "" {
				c.notifier.Success(successMsg)
			}
		})
	}()
}

func (c *Controller) showDetail(snap live.RaceSnapshot, route []RoutePoint) {
	focused := c.registry.FocusSnapshot(snap)
	if c.renderer != nil {
		c.renderer.Close()
	}
	c.renderer = mapview.NewRenderer(c.provider, mapContainer)
	c.renderer.Show(focused, toLatLngs(route))
}

// CloseDetail returns to the list view, releasing the map surface.
func (c *Controller) CloseDetail() {
	c.enqueue(func() {
		c.view = viewList
		c.registry.Unfocus()
		if c.renderer != nil {
			c.renderer.Close()
			c.renderer = nil
		}
	})
}

// Resize redraws the map surface after a container or window resize.
func (c *Controller) Resize() {
	c.enqueue(func() {
		if c.renderer != nil {
			c.renderer.Resize()
		}
	})
}

// Certificate downloads the finisher certificate for a completed race.
func (c *Controller) Certificate(raceID string) {
	go func() {
		path, err := c.api.DownloadCertificate(c.ctx, raceID, c.downloadDir)
		c.enqueue(func() {
			if err != nil {
				c.log.Warn("certificate download failed", zap.String("race", raceID), zap.Error(err))
				c.notifier.Error("Failed to generate certificate. Please try again later.")
				return
			}
			c.log.Info("certificate saved", zap.String("path", path))
			c.notifier.Success("Certificate generated and downloaded successfully.")
		})
	}()
}

// --- synchronized accessors ----------------------------------------

// Races returns the registry contents in backend display order.
func (c *Controller) Races() []live.RaceSnapshot {
	var out []live.RaceSnapshot
	c.sync(func() { out = c.registry.List() })
	return out
}

// Focused returns a copy of the focused snapshot, if any.
func (c *Controller) Focused() (live.RaceSnapshot, bool) {
	var (
		snap live.RaceSnapshot
		ok   bool
	)
	c.sync(func() {
		if focused := c.registry.Focused(); focused != nil {
			snap = focused.Clone()
			ok = true
		}
	})
	return snap, ok
}

// View reports whether the dashboard shows the list or a race detail.
func (c *Controller) View() string {
	var view string
	c.sync(func() { view = c.view })
	return view
}

func (c *Controller) sync(fn func()) {
	ran := make(chan struct{})
	c.enqueue(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
	case <-c.done:
	}
}

func toLatLngs(points []RoutePoint) []mapview.LatLng {
	if len(points) == 0 {
		return nil
	}
	out := make([]mapview.LatLng, len(points))
	for i, p := range points {
		out[i] = mapview.LatLng{Lat: p.Lat, Lng: p.Lng}
	}
	return out
}
