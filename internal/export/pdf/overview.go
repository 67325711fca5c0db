package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type OverviewData struct {
	Title       string
	GeneratedAt string

	Metrics   []Metric
	Locations []LocationRow
}

type Metric struct {
	Label string
	Value string
}

type LocationRow struct {
	Location      string
	TotalMembers  string
	ActiveMembers string
	Churned       string
	AvgMonthlyFee string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateOverview(ctx context.Context, data OverviewData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.Title, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Generated "+data.GeneratedAt, props.Text{Size: 9}),
	)

	// Headline numbers, two per row
	for i := 0; i < len(data.Metrics); i += 2 {
		left := data.Metrics[i]
		if i+1 < len(data.Metrics) {
			right := data.Metrics[i+1]
			m.AddRow(8,
				text.NewCol(4, left.Label, props.Text{Size: 10}),
				text.NewCol(2, left.Value, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
				text.NewCol(4, right.Label, props.Text{Size: 10, Left: 4}),
				text.NewCol(2, right.Value, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
			)
			continue
		}
		m.AddRow(8,
			text.NewCol(4, left.Label, props.Text{Size: 10}),
			text.NewCol(2, left.Value, props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
			col.New(6),
		)
	}

	m.AddRow(12,
		text.NewCol(12, "Locations", props.Text{Size: 13, Style: fontstyle.Bold, Top: 4}),
	)
	m.AddRow(8,
		text.NewCol(4, "Location", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Members", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Active", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Churned", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Avg fee", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, loc := range data.Locations {
		m.AddRow(7,
			text.NewCol(4, loc.Location, props.Text{Size: 9}),
			text.NewCol(2, loc.TotalMembers, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, loc.ActiveMembers, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, loc.Churned, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, loc.AvgMonthlyFee, props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
