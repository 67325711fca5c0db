package domain

import "context"

// Snapshot is the in-memory view of the four tables a report is computed
// over.
type Snapshot struct {
	Members  []Member
	Checkins []Checkin
	Sales    []Sale
	Leads    []Lead
}

func LoadSnapshot(ctx context.Context, r Reader, tables Table) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if tables&TableMembers != 0 {
		if snap.Members, err = r.Members(ctx); err != nil {
			return Snapshot{}, err
		}
	}
	if tables&TableCheckins != 0 {
		if snap.Checkins, err = r.Checkins(ctx); err != nil {
			return Snapshot{}, err
		}
	}
	if tables&TableSales != 0 {
		if snap.Sales, err = r.Sales(ctx); err != nil {
			return Snapshot{}, err
		}
	}
	if tables&TableLeads != 0 {
		if snap.Leads, err = r.Leads(ctx); err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}
