package strategy

// Builtin returns the registry of every strategy the search API exposes.
// The names are part of the public request contract.
func Builtin(classes Classes) (*Registry, error) {
	return NewRegistry(builtinEntries(classes)...)
}

// MustBuiltin is Builtin with the embedded class table; it panics on a broken table.
func MustBuiltin() *Registry {
	classes, err := DefaultClasses()
	if err != nil {
		panic(err)
	}
	r, err := Builtin(classes)
	if err != nil {
		panic(err)
	}
	return r
}

func builtinEntries(classes Classes) []Entry {
	return []Entry{
		// Similarity
		similarityEntry("wordmark",
			textTarget{table: "casefileheader", text: "x.mark_identification"}),
		similarityEntry("attorney",
			textTarget{table: "casefileheader", text: "x.attorney_name", guard: "x.attorney_name IS NOT NULL"}),
		similarityEntry("owner_name",
			textTarget{table: "owner", text: "x.party_name", guard: "x.party_name IS NOT NULL"}),
		similarityEntry("dba",
			textTarget{table: "owner", text: "x.dba_aka_text", guard: "x.dba_aka_text IS NOT NULL"}),
		similarityEntry("description_of_mark",
			textTarget{table: "casefilestatement", text: "x.statement_text", guard: "x.type_code = 'DM0000'"}),
		similarityEntry("disclaimer_statements",
			textTarget{
				table: "casefilestatement",
				text:  `substring(x.statement_text from '"([^"]+)"')`,
				guard: "x.type_code = 'D00000'",
			},
			textTarget{table: "casefilestatement", text: "x.statement_text", guard: "x.type_code = 'D10000'"},
		),

		// Phonetic
		phoneticEntry("phonetic"),

		// Presence: header flags
		headerFlag("section_12c", "section_12c_in"),
		headerFlag("section_8", "section_8_filed_in"),
		headerFlag("section_15", "section_15_filed_in"),
		headerFlag("change_registration", "change_registration_in"),
		headerFlag("concurrent_use", "concurrent_use_in"),
		headerFlag("concurrent_use_proceeding", "concurrent_use_proceeding_in"),
		headerFlag("color_drawing", "color_drawing_current_in"),
		headerFlag("three_d_drawing", "drawing_3d_current_in"),
		headerFlag("standard_character_claim", "standard_characters_claimed_in"),
		headerFlag("acquired_distinctiveness_whole", "section_2f_in"),
		headerFlag("acquired_distinctiveness_part", "section_2f_in_part_in"),
		headerFlag("foreign_priority_claim",
			"filing_basis_current_44d_in", "amended_to_44d_application_in", "filing_basis_filed_as_44d_in"),
		headerFlag("foreign_registration",
			"filing_basis_filed_as_44e_in", "amended_to_44e_application_in", "filing_basis_current_44e_in"),
		headerFlag("extension_protection", "filing_basis_filed_as_66a_in", "filing_basis_current_66a_in"),
		headerFlag("no_current_basis", "filing_current_no_basis_in"),
		headerFlag("no_initial_basis", "without_basis_currently_in"),

		// Presence: related rows
		related("priority_claimed", "internationalregistration", "x.priority_claimed_in IS TRUE"),
		related("first_refusal", "internationalregistration", "x.first_refusal_in IS TRUE"),
		related("prior_registration_present", "priorregistrationapplication", ""),
		related("assignment_recorded", "casefilestatement", "x.type_code = '601'"),
		related("name_change", "owner",
			"x.name_change_explanation IS NOT NULL AND x.name_change_explanation <> ''"),

		// Date ranges
		dateEntry("filing_date", "casefileheader", "filing_date", ""),
		dateEntry("registration_date", "casefileheader", "registration_date", ""),
		dateEntry("cancellation_date", "casefileheader", "cancellation_date", ""),
		dateEntry("renewal_date", "casefileheader", "renewal_date", ""),
		dateEntry("published_opposition_date", "casefileheader", "published_for_opposition_date", ""),
		dateEntry("foreign_filing_date", "foreignapplication", "foreign_filing_date", ""),
		dateEntry("foreign_registration_date", "foreignapplication", "foreign_registration_date", ""),
		dateEntry("foreign_renewal_date", "foreignapplication", "registration_renewal_date", ""),
		dateEntry("int_reg_date", "internationalregistration", "international_registration_date", ""),
		dateEntry("int_pub_date", "internationalregistration", "international_publication_date", ""),
		dateEntry("auto_protection_date", "internationalregistration", "auto_protection_date", ""),
		dateEntry("international_renewal_date", "internationalregistration", "international_renewal_date", ""),
		dateEntry("priority_date_range", "foreignapplication", "foreign_filing_date",
			"x.foreign_priority_claim_in IS TRUE"),

		// Exact
		exactEntry("serial_number", "casefile", "x.serial_number", asInt),
		exactEntry("registration_number", "casefile", "x.registration_number", asText),
		exactEntry("international_class", "classification", "x.international_code", asClassCode),
		exactEntry("us_class", "classification", "x.us_code", asClassCode),
		exactEntry("design_code", "designsearch", "x.design_search_code", asInt),
		exactEntry("int_reg_number", "internationalregistration", "x.international_registration_number", asBigint),
		exactEntry("international_status_code", "internationalregistration", "x.international_status_code", asInt),
		exactEntry("owner_legal_entity", "owner", "x.legal_entity_type_code", asLegalEntity),
		exactEntry("owner_party_type", "owner", "x.party_type", asInt),
		exactEntry("drawing_code_type", "casefileheader", "substr(x.mark_drawing_code, 1, 1)", asDrawingType),

		// Coordinated
		coordinatedEntry("coordinated_class", classes),
	}
}
