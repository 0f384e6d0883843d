package config

// defaultTemplate is the built-in rule set: federal + Florida state
// court calendars for 2026-2027, the trigger classification table,
// and the stock Florida/federal civil rule templates. Holiday tables
// must be extended each year; dates beyond the covered range degrade
// to weekend-only adjustment.
const defaultTemplate = `engine:
  on_parent_delete: orphan

service_methods:
  electronic: 0
  personal: 0
  mail: 5

calendars:
  federal:
    holidays:
      2026:
        - 2026-01-01   # New Year's Day
        - 2026-01-19   # Birthday of Martin Luther King, Jr.
        - 2026-02-16   # Washington's Birthday
        - 2026-05-25   # Memorial Day
        - 2026-06-19   # Juneteenth
        - 2026-07-03   # Independence Day (observed)
        - 2026-09-07   # Labor Day
        - 2026-10-12   # Columbus Day
        - 2026-11-11   # Veterans Day
        - 2026-11-26   # Thanksgiving Day
        - 2026-12-25   # Christmas Day
      2027:
        - 2027-01-01
        - 2027-01-18
        - 2027-02-15
        - 2027-05-31
        - 2027-06-18   # Juneteenth (observed)
        - 2027-07-05   # Independence Day (observed)
        - 2027-09-06
        - 2027-10-11
        - 2027-11-11
        - 2027-11-25
        - 2027-12-24   # Christmas Day (observed)
  florida_state:
    extends: federal
    holidays: {}

triggers:
  - type: complaint_served
    patterns:
      - return of service
      - proof of service
      - service of process
      - summons returned
      - affidavit of service
  - type: trial_date
    patterns:
      - uniform trial order
      - trial order
      - order setting trial
      - notice of trial
      - trial date
  - type: motion_filed
    patterns:
      - motion to
      - motion for
      - notice of hearing on motion
  - type: discovery_served
    patterns:
      - interrogatories
      - request for production
      - request for admissions
  - type: case_filed
    patterns:
      - complaint
      - petition
      - statement of claim

templates:
  - id: fl-civil-trial-order
    name: Florida Civil Trial Order
    jurisdiction: florida_state
    court_type: civil
    trigger_type: trial_date
    deadlines:
      - title: Plaintiff expert witness disclosure
        offset_days: -90
        method: calendar_days
        priority: critical
        party: plaintiff
        action: Serve plaintiff expert witness disclosures
        citation: Fla. R. Civ. P. 1.280(b)(5)
        deadline_type: disclosure
      - title: Defendant expert witness disclosure
        offset_days: -60
        method: calendar_days
        priority: critical
        party: defendant
        action: Serve defendant expert witness disclosures
        citation: Fla. R. Civ. P. 1.280(b)(5)
        deadline_type: disclosure
      - title: Dispositive motions filed
        offset_days: -70
        method: calendar_days
        priority: important
        party: both
        action: File and serve all dispositive and Daubert motions
        citation: Fla. R. Civ. P. 1.510(c)
        deadline_type: motion
      - title: Fact discovery cutoff
        offset_days: -45
        method: calendar_days
        priority: critical
        party: both
        action: Complete all fact discovery
        citation: Fla. R. Civ. P. 1.280
        deadline_type: discovery
      - title: Mediation completed
        offset_days: -45
        method: calendar_days
        priority: important
        party: both
        action: Complete court-ordered mediation
        citation: Fla. R. Civ. P. 1.700
        deadline_type: adr
      - title: Witness lists exchanged
        offset_days: -45
        method: calendar_days
        priority: important
        party: both
        action: Exchange final witness lists
        deadline_type: disclosure
      - title: Exhibit lists exchanged
        offset_days: -45
        method: calendar_days
        priority: important
        party: both
        action: Exchange final exhibit lists
        deadline_type: disclosure
      - title: Motions in limine filed
        offset_days: -30
        method: calendar_days
        priority: important
        party: both
        action: File motions in limine
        deadline_type: motion
      - title: Joint pretrial statement filed
        offset_days: -20
        method: business_days
        priority: critical
        party: both
        action: File the joint pretrial statement
        citation: Fla. R. Civ. P. 1.200(c)
        deadline_type: filing
      - title: Deposition designations served
        offset_days: -15
        method: calendar_days
        priority: standard
        party: both
        action: Serve deposition designations
        deadline_type: disclosure
      - title: Objections to exhibits filed
        offset_days: -10
        method: business_days
        priority: standard
        party: both
        action: File objections to listed exhibits
        deadline_type: filing
      - title: Proposed jury instructions filed
        offset_days: -7
        method: calendar_days
        priority: critical
        party: both
        action: File proposed jury instructions and verdict forms
        citation: Fla. R. Civ. P. 1.470(b)
        deadline_type: filing
      - title: Trial brief filed
        offset_days: -5
        method: business_days
        priority: standard
        party: both
        action: File trial brief
        deadline_type: filing

  - id: fl-civil-complaint-response
    name: Florida Civil Complaint Response
    jurisdiction: florida_state
    court_type: civil
    trigger_type: complaint_served
    deadlines:
      - title: Answer or responsive motion due
        offset_days: 20
        method: calendar_days
        priority: fatal
        party: defendant
        action: Serve an answer or motion directed at the complaint
        add_service_days: true
        citation: Fla. R. Civ. P. 1.140(a)(1)
        deadline_type: response
      - title: Removal window closes (if removable)
        offset_days: 30
        method: calendar_days
        priority: important
        party: defendant
        action: Evaluate and file notice of removal if grounds exist
        citation: 28 U.S.C. § 1446(b)
        deadline_type: filing

  - id: fl-civil-case-filed
    name: Florida Civil Case Filed
    jurisdiction: florida_state
    court_type: civil
    trigger_type: case_filed
    deadlines:
      - title: Service of process completed
        offset_days: 120
        method: calendar_days
        priority: fatal
        party: plaintiff
        action: Serve all defendants with process
        citation: Fla. R. Civ. P. 1.070(j)
        deadline_type: service

  - id: fl-civil-motion-response
    name: Florida Civil Motion Response
    jurisdiction: florida_state
    court_type: civil
    trigger_type: motion_filed
    deadlines:
      - title: Response to motion due
        offset_days: 15
        method: business_days
        priority: important
        party: opposing
        action: Serve response in opposition to the motion
        add_service_days: true
        deadline_type: response
      - title: Reply in support of motion due
        offset_days: 20
        method: business_days
        priority: standard
        party: movant
        action: Serve reply in support of the motion
        deadline_type: response

  - id: fl-civil-discovery-response
    name: Florida Civil Discovery Response
    jurisdiction: florida_state
    court_type: civil
    trigger_type: discovery_served
    deadlines:
      - title: Responses to written discovery due
        offset_days: 30
        method: calendar_days
        priority: important
        party: responding
        action: Serve answers or objections to the discovery requests
        add_service_days: true
        citation: Fla. R. Civ. P. 1.340(a)
        deadline_type: response

  - id: fed-civil-complaint-response
    name: Federal Civil Complaint Response
    jurisdiction: federal
    court_type: civil
    trigger_type: complaint_served
    deadlines:
      - title: Answer due
        offset_days: 21
        method: calendar_days
        priority: fatal
        party: defendant
        action: Serve an answer or Rule 12 motion
        add_service_days: true
        citation: Fed. R. Civ. P. 12(a)(1)(A)(i)
        deadline_type: response
`
