package model

// DayMark describes everything displayed on a single calendar day after
// merging both partners' tracked dates.
type DayMark struct {
	// Selected is set for days in the user's own flow set.
	Selected bool
	// PartnerFlow marks days in the partner's flow set. On a day where
	// Selected also holds, the flows co-occur.
	PartnerFlow bool
	// SelfIntimacy and PartnerIntimacy are independent annotations and
	// never displace a flow marker.
	SelfIntimacy    bool
	PartnerIntimacy bool
}

// CoOccurring reports whether both partners' flow sets contain the day.
func (m DayMark) CoOccurring() bool {
	return m.Selected && m.PartnerFlow
}

// MergeCalendars combines the four tracked-date sets into one marking
// per day. The result is a pure function of its inputs and is rebuilt
// from scratch on every call.
//
// Overlays are additive: self-flow establishes the Selected marker,
// the two intimacy sets annotate without displacing anything, and
// partner-flow either joins an existing self-flow day (co-occurrence)
// or stands alone with Selected unset.
func MergeCalendars(selfFlow, selfIntimacy, partnerFlow, partnerIntimacy DateSet) map[string]DayMark {
	merged := make(map[string]DayMark, len(selfFlow)+len(selfIntimacy)+len(partnerFlow)+len(partnerIntimacy))

	for day := range selfFlow {
		m := merged[day]
		m.Selected = true
		merged[day] = m
	}
	for day := range selfIntimacy {
		m := merged[day]
		m.SelfIntimacy = true
		merged[day] = m
	}
	for day := range partnerIntimacy {
		m := merged[day]
		m.PartnerIntimacy = true
		merged[day] = m
	}
	for day := range partnerFlow {
		m := merged[day]
		m.PartnerFlow = true
		merged[day] = m
	}

	return merged
}
