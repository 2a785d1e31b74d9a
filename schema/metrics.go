package schema

// DefaultMetricNames maps the numeric metric ids stored in report archives to their names.
var DefaultMetricNames = map[string]string{
	"1":  "nb_uniq_visitors",
	"2":  "nb_visits",
	"3":  "nb_actions",
	"4":  "max_actions",
	"5":  "sum_visit_length",
	"6":  "bounce_count",
	"7":  "nb_visits_converted",
	"8":  "nb_conversions",
	"9":  "revenue",
	"10": "goals",
	"11": "sum_daily_nb_uniq_visitors",
	"12": "nb_hits",
	"13": "sum_time_spent",
	"14": "exit_nb_uniq_visitors",
	"15": "exit_nb_visits",
	"16": "sum_daily_exit_nb_uniq_visitors",
	"17": "entry_nb_uniq_visitors",
	"18": "sum_daily_entry_nb_uniq_visitors",
	"19": "entry_nb_visits",
	"20": "entry_nb_actions",
	"21": "entry_sum_visit_length",
	"22": "entry_bounce_count",
}
