package oireachtas

import "strings"

// Wire types for the Oireachtas Open Data API. Only the fields the ingestion
// jobs read are modelled; the API returns far more.

type head struct {
	Counts struct {
		ResultCount int `json:"resultCount"`
	} `json:"counts"`
}

type membersResponse struct {
	Head    head `json:"head"`
	Results []struct {
		Member Member `json:"member"`
	} `json:"results"`
}

type Member struct {
	MemberCode  string `json:"memberCode"`
	FullName    string `json:"fullName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Memberships []struct {
		Membership Membership `json:"membership"`
	} `json:"memberships"`
}

type Membership struct {
	House struct {
		HouseCode string `json:"houseCode"`
		HouseNo   string `json:"houseNo"`
	} `json:"house"`
	Parties []struct {
		Party struct {
			ShowAs    string `json:"showAs"`
			PartyCode string `json:"partyCode"`
		} `json:"party"`
	} `json:"parties"`
	Represents []struct {
		Represent struct {
			ShowAs        string `json:"showAs"`
			RepresentCode string `json:"representCode"`
			RepresentType string `json:"representType"`
		} `json:"represent"`
	} `json:"represents"`
	Offices []struct {
		Office struct {
			OfficeName struct {
				ShowAs string `json:"showAs"`
			} `json:"officeName"`
		} `json:"office"`
	} `json:"offices"`
	DateRange struct {
		Start string  `json:"start"`
		End   *string `json:"end"`
	} `json:"dateRange"`
}

// CurrentParty returns the party of the most recent membership, preferring
// one with no end date.
func (m Member) CurrentParty() string {
	for _, ms := range m.Memberships {
		if ms.Membership.DateRange.End != nil {
			continue
		}
		for _, p := range ms.Membership.Parties {
			if p.Party.ShowAs != "" {
				return p.Party.ShowAs
			}
		}
	}
	for _, ms := range m.Memberships {
		for _, p := range ms.Membership.Parties {
			if p.Party.ShowAs != "" {
				return p.Party.ShowAs
			}
		}
	}
	return ""
}

func (m Member) CurrentConstituency() string {
	for _, ms := range m.Memberships {
		if ms.Membership.DateRange.End != nil {
			continue
		}
		for _, r := range ms.Membership.Represents {
			if r.Represent.ShowAs != "" {
				return r.Represent.ShowAs
			}
		}
	}
	for _, ms := range m.Memberships {
		for _, r := range ms.Membership.Represents {
			if r.Represent.ShowAs != "" {
				return r.Represent.ShowAs
			}
		}
	}
	return ""
}

// IsActive reports whether the member holds an open-ended membership.
func (m Member) IsActive() bool {
	for _, ms := range m.Memberships {
		if ms.Membership.DateRange.End == nil {
			return true
		}
	}
	return false
}

// HoldsOffice reports whether any open membership carries a ministerial or
// other office.
func (m Member) HoldsOffice() bool {
	for _, ms := range m.Memberships {
		if ms.Membership.DateRange.End != nil {
			continue
		}
		if len(ms.Membership.Offices) > 0 {
			return true
		}
	}
	return false
}

type divisionsResponse struct {
	Head    head `json:"head"`
	Results []struct {
		Division Division `json:"division"`
	} `json:"results"`
}

type Division struct {
	VoteID  string `json:"voteId"`
	Date    string `json:"date"`
	Subject struct {
		ShowAs string `json:"showAs"`
	} `json:"subject"`
	House struct {
		ChamberCode string `json:"chamberCode"`
	} `json:"house"`
	Tallies struct {
		TaVotes    tally `json:"taVotes"`
		NilVotes   tally `json:"nilVotes"`
		StaonVotes tally `json:"staonVotes"`
	} `json:"tallies"`
}

type tally struct {
	Members []struct {
		Member struct {
			MemberCode string `json:"memberCode"`
			ShowAs     string `json:"showAs"`
		} `json:"member"`
	} `json:"members"`
}

// Ballot is one member's recorded position in a division: "ta" (yes),
// "nil" (no) or "staon" (abstain).
type Ballot struct {
	MemberCode string
	MemberName string
	VotedAs    string
}

func (d Division) Ballots() []Ballot {
	var ballots []Ballot
	for _, m := range d.Tallies.TaVotes.Members {
		ballots = append(ballots, Ballot{MemberCode: m.Member.MemberCode, MemberName: m.Member.ShowAs, VotedAs: "ta"})
	}
	for _, m := range d.Tallies.NilVotes.Members {
		ballots = append(ballots, Ballot{MemberCode: m.Member.MemberCode, MemberName: m.Member.ShowAs, VotedAs: "nil"})
	}
	for _, m := range d.Tallies.StaonVotes.Members {
		ballots = append(ballots, Ballot{MemberCode: m.Member.MemberCode, MemberName: m.Member.ShowAs, VotedAs: "staon"})
	}
	return ballots
}

type questionsResponse struct {
	Head    head `json:"head"`
	Results []struct {
		Question Question `json:"question"`
	} `json:"results"`
}

type Question struct {
	QuestionNumber int       `json:"questionNumber"`
	QuestionType   string    `json:"questionType"`
	Date           string    `json:"date"`
	ShowAs         string    `json:"showAs"`
	By             memberRef `json:"by"`
}

// memberRef is the compact member reference the questions and legislation
// endpoints embed. The canonical member URI ends with the member code.
type memberRef struct {
	ShowAs string `json:"showAs"`
	URI    string `json:"uri"`
}

func (r memberRef) MemberCode() string {
	if r.URI == "" {
		return ""
	}
	uri := strings.TrimSuffix(r.URI, "/")
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

type legislationResponse struct {
	Head    head `json:"head"`
	Results []struct {
		Bill Bill `json:"bill"`
	} `json:"results"`
}

type Bill struct {
	BillNo     string `json:"billNo"`
	BillYear   string `json:"billYear"`
	ShortTitle string `json:"shortTitleEn"`
	Status     string `json:"status"`
	Sponsors   []struct {
		Sponsor struct {
			By        memberRef `json:"by"`
			IsPrimary bool      `json:"isPrimary"`
		} `json:"sponsor"`
	} `json:"sponsors"`
}

// SponsorCodes returns the member codes of the bill's sponsors. Government
// bills sponsored by a department rather than a member carry no URI and
// contribute nothing.
func (b Bill) SponsorCodes() []string {
	var codes []string
	for _, s := range b.Sponsors {
		if code := s.Sponsor.By.MemberCode(); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

type debatesResponse struct {
	Head    head `json:"head"`
	Results []struct {
		DebateRecord DebateRecord `json:"debateRecord"`
	} `json:"results"`
}

type DebateRecord struct {
	Date    string `json:"date"`
	Chamber struct {
		ShowAs string `json:"showAs"`
	} `json:"chamber"`
	DebateSections []struct {
		DebateSection DebateSection `json:"debateSection"`
	} `json:"debateSections"`
}

type DebateSection struct {
	DebateSectionID string `json:"debateSectionId"`
	ShowAs          string `json:"showAs"`
	Formats         struct {
		XML struct {
			URI string `json:"uri"`
		} `json:"xml"`
	} `json:"formats"`
}
