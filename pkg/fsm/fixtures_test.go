package fsm

import "github.com/aretw0/fsmgen/pkg/domain"

func tr(trigger, target string) domain.Transition {
	return domain.Transition{Trigger: trigger, Target: target, Action: "act" + trigger}
}

func st(name string, ts ...domain.Transition) domain.State {
	return domain.State{Name: name, Transitions: ts}
}

// auctionDoc is a valid FSM with a cycle Bidding -> Ended -> Bidding.
func auctionDoc() *domain.Document {
	return &domain.Document{
		ContractName: "Auction",
		InitialState: "Created",
		States: []domain.State{
			st("Created", tr("Start", "Bidding")),
			st("Bidding", tr("Bid", "Bidding"), tr("End", "Ended")),
			st("Ended", tr("Restart", "Bidding")),
		},
		Functions: []domain.FunctionSpec{{Name: "bid", Function: "Place a bid."}},
		Events:    []string{"Start", "Bid", "End", "Restart"},
	}
}
