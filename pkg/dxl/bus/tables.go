package bus

// AXSeries is the control table of protocol 1 AX-12 style devices.
var AXSeries = Table{
	{"model_number", 0, 2, ReadOnly},
	{"firmware_version", 2, 1, ReadOnly},
	{"id", 3, 1, ReadWrite},
	{"baud_rate", 4, 1, ReadWrite},
	{"return_delay_time", 5, 1, ReadWrite},
	{"cw_angle_limit", 6, 2, ReadWrite},
	{"ccw_angle_limit", 8, 2, ReadWrite},
	{"temperature_limit", 11, 1, ReadWrite},
	{"min_voltage_limit", 12, 1, ReadWrite},
	{"max_voltage_limit", 13, 1, ReadWrite},
	{"max_torque", 14, 2, ReadWrite},
	{"status_return_level", 16, 1, ReadWrite},
	{"alarm_led", 17, 1, ReadWrite},
	{"shutdown", 18, 1, ReadWrite},
	{"torque_enable", 24, 1, ReadWrite},
	{"led", 25, 1, ReadWrite},
	{"cw_compliance_margin", 26, 1, ReadWrite},
	{"ccw_compliance_margin", 27, 1, ReadWrite},
	{"cw_compliance_slope", 28, 1, ReadWrite},
	{"ccw_compliance_slope", 29, 1, ReadWrite},
	{"goal_position", 30, 2, ReadWrite},
	{"moving_speed", 32, 2, ReadWrite},
	{"torque_limit", 34, 2, ReadWrite},
	{"present_position", 36, 2, ReadOnly},
	{"present_speed", 38, 2, ReadOnly},
	{"present_load", 40, 2, ReadOnly},
	{"present_voltage", 42, 1, ReadOnly},
	{"present_temperature", 43, 1, ReadOnly},
	{"registered", 44, 1, ReadOnly},
	{"moving", 46, 1, ReadOnly},
	{"lock", 47, 1, ReadWrite},
	{"punch", 48, 2, ReadWrite},
}

// XSeries is the control table of protocol 2 X-series devices.
var XSeries = Table{
	{"model_number", 0, 2, ReadOnly},
	{"model_information", 2, 4, ReadOnly},
	{"firmware_version", 6, 1, ReadOnly},
	{"id", 7, 1, ReadWrite},
	{"baud_rate", 8, 1, ReadWrite},
	{"return_delay_time", 9, 1, ReadWrite},
	{"drive_mode", 10, 1, ReadWrite},
	{"operating_mode", 11, 1, ReadWrite},
	{"secondary_id", 12, 1, ReadWrite},
	{"protocol_type", 13, 1, ReadWrite},
	{"homing_offset", 20, 4, ReadWrite},
	{"moving_threshold", 24, 4, ReadWrite},
	{"temperature_limit", 31, 1, ReadWrite},
	{"max_voltage_limit", 32, 2, ReadWrite},
	{"min_voltage_limit", 34, 2, ReadWrite},
	{"pwm_limit", 36, 2, ReadWrite},
	{"current_limit", 38, 2, ReadWrite},
	{"velocity_limit", 44, 4, ReadWrite},
	{"max_position_limit", 48, 4, ReadWrite},
	{"min_position_limit", 52, 4, ReadWrite},
	{"shutdown", 63, 1, ReadWrite},
	{"torque_enable", 64, 1, ReadWrite},
	{"led", 65, 1, ReadWrite},
	{"status_return_level", 68, 1, ReadWrite},
	{"registered_instruction", 69, 1, ReadOnly},
	{"hardware_error_status", 70, 1, ReadOnly},
	{"velocity_i_gain", 76, 2, ReadWrite},
	{"velocity_p_gain", 78, 2, ReadWrite},
	{"position_d_gain", 80, 2, ReadWrite},
	{"position_i_gain", 82, 2, ReadWrite},
	{"position_p_gain", 84, 2, ReadWrite},
	{"goal_pwm", 100, 2, ReadWrite},
	{"goal_current", 102, 2, ReadWrite},
	{"goal_velocity", 104, 4, ReadWrite},
	{"profile_acceleration", 108, 4, ReadWrite},
	{"profile_velocity", 112, 4, ReadWrite},
	{"goal_position", 116, 4, ReadWrite},
	{"realtime_tick", 120, 2, ReadOnly},
	{"moving", 122, 1, ReadOnly},
	{"moving_status", 123, 1, ReadOnly},
	{"present_pwm", 124, 2, ReadOnly},
	{"present_current", 126, 2, ReadOnly},
	{"present_velocity", 128, 4, ReadOnly},
	{"present_position", 132, 4, ReadOnly},
	{"velocity_trajectory", 136, 4, ReadOnly},
	{"position_trajectory", 140, 4, ReadOnly},
	{"present_input_voltage", 144, 2, ReadOnly},
	{"present_temperature", 146, 1, ReadOnly},
}
