package matching

import "context"

// Index implementa dogs.MatchIndex sobre el repo de matches.
type Index struct {
	matches MatchRepository
}

func NewIndex(matches MatchRepository) *Index {
	return &Index{matches: matches}
}

func (i *Index) CounterpartsOf(ctx context.Context, userID string) (map[string]struct{}, error) {
	ms, err := i.matches.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ms))
	for _, m := range ms {
		out[m.Other(userID)] = struct{}{}
	}
	return out, nil
}
