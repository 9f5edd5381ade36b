// Package tracker implements the contribution tracker program.
//
// The program keeps four kinds of records, all stored at program derived
// addresses:
//
//	Tracker       ["contribution_tracker"]
//	Period        ["distribution_period", u64le(number)]
//	Contributor   ["contributor", principal]
//	Contribution  ["contribution", principal, u64le(period), u64le(sequence)]
//
// Contributors submit contributions into the current period. The admin
// reviews them; approved points are credited to the period. Once the period
// has expired the admin processes its distribution, which either leaves the
// period budget in the reward vault for contributors to claim pro rata, or
// moves it to the reserve vault when the period total is below the minimum
// threshold. Processing finalizes the period and opens the next one.
//
// Claims re-scan the contributor's contributions in the claimed period, so
// the share only depends on approved records, never on rolling counters.
package tracker
