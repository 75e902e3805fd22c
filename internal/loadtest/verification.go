package loadtest

import (
	"fmt"

	"github.com/okian/cujulink/internal/domain/types"
)

// chainRequest turns a find_link answer into a validate_chain body. Each step
// must start where the previous one ended.
func chainRequest(start, end string, links []types.LinkDetail) (types.ValidateChainRequest, error) {
	if len(links) == 0 {
		return types.ValidateChainRequest{}, fmt.Errorf("empty chain from %q to %q", start, end)
	}
	req := types.ValidateChainRequest{
		StartPlayer: links[0].Player,
		EndPlayer:   links[len(links)-1].NextPlayer,
	}
	for i := 1; i < len(links); i++ {
		if links[i].Player != links[i-1].NextPlayer {
			return req, fmt.Errorf("step %d starts at %q but step %d ended at %q",
				i, links[i].Player, i-1, links[i-1].NextPlayer)
		}
		req.IntermediatePlayers = append(req.IntermediatePlayers, links[i].Player)
	}
	return req, nil
}
