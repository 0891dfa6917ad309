package party

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

// partyColors are the display colours for parties in the current Dail.
// Unknown parties and independents get a neutral grey.
var partyColors = map[string]string{
	"Fianna Fáil":                     "#66BB66",
	"Fine Gael":                       "#6699FF",
	"Sinn Féin":                       "#326760",
	"Labour Party":                    "#CC0000",
	"Social Democrats":                "#752F8B",
	"Green Party":                     "#99CC33",
	"People Before Profit-Solidarity": "#8E2420",
	"Aontú":                           "#44532A",
	"Independent Ireland":             "#0C6904",
	"Independent":                     "#888888",
}

const defaultColor = "#888888"

func ColorFor(party string) string {
	if c, ok := partyColors[party]; ok {
		return c
	}
	return defaultColor
}

type Store interface {
	ListTDs(ctx context.Context, activeOnly bool) ([]models.TDScore, error)
	UpsertPartyPerformance(ctx context.Context, p *models.PartyPerformance) error
}

// Aggregator recomputes party score rows as the unweighted mean of each
// party's sitting TDs, per dimension. Every TD counts equally regardless
// of constituency size or office held.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

func (a *Aggregator) Run(ctx context.Context) (int, error) {
	tds, err := a.store.ListTDs(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list tds: %w", err)
	}

	byParty := make(map[string][]models.TDScore)
	for _, td := range tds {
		if td.Party == "" {
			continue
		}
		byParty[td.Party] = append(byParty[td.Party], td)
	}

	logger.Info("Aggregating party performance",
		zap.Int("tds", len(tds)),
		zap.Int("parties", len(byParty)),
	)

	written := 0
	for name, members := range byParty {
		perf := aggregate(name, members)
		if err := a.store.UpsertPartyPerformance(ctx, perf); err != nil {
			return written, fmt.Errorf("failed to upsert party %s: %w", name, err)
		}
		metrics.PartiesAggregated.Inc()
		written++
	}

	logger.Info("Party performance aggregated", zap.Int("parties", written))
	return written, nil
}

func aggregate(name string, members []models.TDScore) *models.PartyPerformance {
	perf := &models.PartyPerformance{
		Party:       name,
		Color:       ColorFor(name),
		MemberCount: len(members),
	}

	for _, td := range members {
		perf.Overall += td.Overall
		perf.Transparency += td.Transparency
		perf.Effectiveness += td.Effectiveness
		perf.Integrity += td.Integrity
		perf.Consistency += td.Consistency
		perf.Service += td.Service
	}

	n := float64(len(members))
	perf.Overall /= n
	perf.Transparency /= n
	perf.Effectiveness /= n
	perf.Integrity /= n
	perf.Consistency /= n
	perf.Service /= n

	return perf
}
