package app

import "os"

func loadState(paths StorePaths) (StateFile, error) {
	var s StateFile
	err := readJSONFile(paths.StatePath, &s)
	if err != nil {
		if os.IsNotExist(err) {
			return StateFile{Version: 1}, nil
		}
		return StateFile{}, err
	}
	if s.Version == 0 {
		s.Version = 1
	}
	return s, nil
}

func saveState(paths StorePaths, state StateFile) error {
	state.Version = 1
	return writeJSONAtomic(paths.StatePath, state)
}

// orderIDs returns ids arranged by the recorded order; ids missing from the
// order follow in the order given.
func orderIDs(order []string, ids []string) []string {
	present := make(map[string]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range order {
		if present[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, id := range ids {
		if !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}

func appendToOrder(state StateFile, id string) StateFile {
	for _, existing := range state.Order {
		if existing == id {
			return state
		}
	}
	state.Order = append(state.Order, id)
	return state
}

func removeFromOrder(state StateFile, id string) StateFile {
	out := state.Order[:0:0]
	for _, existing := range state.Order {
		if existing != id {
			out = append(out, existing)
		}
	}
	state.Order = out
	return state
}
