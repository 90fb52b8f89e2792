package neat

// AdjustFitness sets AdjustedFitness on every member. normalize maps a raw
// fitness to a non-negative value where larger is better. Young species get
// a bonus, old species a penalty, and the result is shared among members.
func (s *Species) AdjustFitness(normalize func(float64) float64, cfg *StagnationConfig) {
	for _, g := range s.Members {
		score := normalize(g.Fitness)
		if s.Age < cfg.YoungBonusAgeThreshold {
			score *= 1 + cfg.YoungFitnessBonus
		}
		if s.Age > cfg.OldAgeThreshold {
			score *= 1 - cfg.OldAgePenalty
		}
		g.AdjustedFitness = score / float64(len(s.Members))
	}
}

// RemoveStagnant drops species that have not improved for more than
// maxGensNoImprovement generations. A species whose best fitness is the
// best-ever fitness of the run is kept. The removed species are returned.
func (p *Population) RemoveStagnant(maxGensNoImprovement int, bestEver float64, hasBestEver bool, cmp Comparator) []*Species {
	var removed []*Species
	kept := p.Species[:0]
	for _, s := range p.Species {
		if s.GensNoImprovement > maxGensNoImprovement && hasBestEver && cmp.IsBetterThan(bestEver, s.BestFitness) {
			removed = append(removed, s)
			continue
		}
		kept = append(kept, s)
	}
	p.Species = kept
	return removed
}
